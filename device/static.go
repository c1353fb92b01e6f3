package device

// Static is a fixed device list, used for dry runs and tests
type Static struct {
	In            []*Device
	Out           []*Device
	DefaultOutIdx int
	Err           error // Returned by every method when set
}

func (s *Static) Inputs() ([]*Device, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.In, nil
}

func (s *Static) Outputs() ([]*Device, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Out, nil
}

func (s *Static) DefaultOutput() (*Device, error) {
	return OutputAt(s, s.DefaultOutIdx)
}

// Constructs a Static lister naming devices after the given names, every
// device is stereo at 48kHz
func NewStatic(inputs, outputs []string) *Static {
	s := &Static{}
	for i, name := range inputs {
		s.In = append(s.In, New(i, name, Input, 2, 48000))
	}
	for i, name := range outputs {
		s.Out = append(s.Out, New(i, name, Output, 2, 48000))
	}
	return s
}

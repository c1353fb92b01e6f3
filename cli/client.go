package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"soundamp/console"
	"soundamp/event"
	"soundamp/run"
	"soundamp/sockets/unix"
)

// Time to wait for the router to answer a control event
const REPLY_DEADLINE = time.Second * 30

// Connects to a running router over its unix socket
func dial() (*unix.Client, error) {
	config := unix.NewConfig()
	client := unix.NewClient()
	if err := client.Connect(config.Address()); err != nil {
		return nil, err
	}
	return client, nil
}

// Sends body to the router and prints replies until done returns true
func send(body []byte, done func(e *event.Event) bool) {
	client, err := dial()
	if err != nil {
		fmt.Println("Unable to connect to soundamp:", err)
		return
	}
	defer client.Close()
	if _, err := client.Write(body); err != nil {
		fmt.Println("Unable to send event:", err)
		return
	}
	exitC := make(chan struct{})
	go func() {
		defer close(exitC)
		for {
			b, err := client.Read()
			if err != nil {
				return
			}
			e := &event.Event{}
			if err := json.Unmarshal(b, e); err != nil {
				fmt.Println("error reading event:", err)
				continue
			}
			fmt.Println(console.Describe(e))
			if done(e) {
				return
			}
		}
	}()
	select {
	case <-exitC:
	case <-run.Quit():
	case <-time.After(REPLY_DEADLINE):
		fmt.Println("no response from soundamp after", REPLY_DEADLINE)
	}
}

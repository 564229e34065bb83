package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/odaacabeef/midicore"
	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/message"
)

func apiFromString(name string) coredrivers.API {
	for _, b := range coredrivers.All() {
		if b.API().String() == name {
			return b.API()
		}
	}
	return coredrivers.Dummy
}

// runVirtualPort opens a same-named virtual input and virtual output on
// the first available backend and echoes everything received on the
// input straight to the output, the same role the teacher's
// VirtualPort plays in port.go.
func runVirtualPort(name string) {
	out, err := midicore.NewOutputPort(midicore.OutputConfig{})
	if err != nil {
		log.Fatalf("failed to select backend for virtual output port: %v", err)
	}

	in, err := midicore.NewInputPort(midicore.InputConfig{OnMessage: func(m message.Message) {
		if err := out.SendMessage(m.Bytes); err != nil {
			log.Printf("Error echoing to %q output: %v", name, err)
		}
	}})
	if err != nil {
		log.Fatalf("failed to select backend for virtual input port: %v", err)
	}

	if err := in.OpenVirtual(name); err != nil {
		log.Fatalf("failed to create virtual MIDI input port %q: %v", name, err)
	}
	defer in.Close()

	if err := out.OpenVirtual(name); err != nil {
		log.Fatalf("failed to create virtual MIDI output port %q: %v", name, err)
	}
	defer out.Close()

	log.Printf("Virtual MIDI port %q is now available", name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	<-ctx.Done()

	log.Printf("Closing virtual MIDI port %q...", name)
}

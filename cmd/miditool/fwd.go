package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/odaacabeef/midicore"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/observer"
	"github.com/odaacabeef/midicore/port"
)

// Forwarder relays every message arriving on one input port to one
// output port, the same shape as the teacher's Forwarder in fwd.go,
// generalized from a single-backend rtmidi assumption to whichever
// backend each named port actually belongs to.
type Forwarder struct {
	input    *midicore.InputPort
	output   *midicore.OutputPort
	inInfo   port.Info
	outInfo  port.Info
}

// NewForwarder resolves inputName/outputName against every currently
// visible port across all available backends.
func NewForwarder(inputName, outputName string) (*Forwarder, error) {
	obs, err := observer.New(observer.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to start observer: %w", err)
	}
	defer obs.Close()

	ins, err := obs.InputPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	outs, err := obs.OutputPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI outputs: %w", err)
	}

	inInfo, ok := findPort(ins, inputName)
	if !ok {
		return nil, fmt.Errorf("input port %q not found", inputName)
	}
	outInfo, ok := findPort(outs, outputName)
	if !ok {
		return nil, fmt.Errorf("output port %q not found", outputName)
	}

	return &Forwarder{inInfo: inInfo, outInfo: outInfo}, nil
}

func findPort(ports []port.Info, name string) (port.Info, bool) {
	for _, p := range ports {
		if p.String() == name {
			return p, true
		}
	}
	return port.Info{}, false
}

// Start opens both ports and forwards messages until ctx is cancelled.
func (f *Forwarder) Start(ctx context.Context) error {
	in, err := midicore.NewInputPort(midicore.InputConfig{
		API: apiFromString(f.inInfo.API), UseAPI: true,
		OnMessage: f.onMessage,
	})
	if err != nil {
		return fmt.Errorf("failed to build input port: %w", err)
	}
	f.input = in

	out, err := midicore.NewOutputPort(midicore.OutputConfig{
		API: apiFromString(f.outInfo.API), UseAPI: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build output port: %w", err)
	}
	f.output = out

	if err := f.input.Open(f.inInfo, "miditool in"); err != nil {
		return fmt.Errorf("failed to open input port: %w", err)
	}
	defer f.input.Close()

	if err := f.output.Open(f.outInfo, "miditool out"); err != nil {
		return fmt.Errorf("failed to open output port: %w", err)
	}
	defer f.output.Close()

	log.Printf("Starting MIDI forwarding from %q to %q", f.inInfo.String(), f.outInfo.String())
	log.Println("Press Ctrl+C to stop")

	<-ctx.Done()
	log.Println("Stopping MIDI forwarding...")
	return nil
}

func (f *Forwarder) onMessage(m message.Message) {
	if err := f.output.SendMessage(m.Bytes); err != nil {
		var merrErr *merr.Error
		if errors.As(err, &merrErr) {
			log.Printf("Error forwarding message (%s): %v", merrErr.Category, err)
			return
		}
		log.Printf("Error forwarding message: %v", err)
	}
}

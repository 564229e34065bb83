package main

import (
	"fmt"
	"log"

	"github.com/odaacabeef/midicore/observer"
)

func listPorts() {
	obs, err := observer.New(observer.Config{})
	if err != nil {
		log.Printf("Error starting observer: %v", err)
		return
	}
	defer obs.Close()

	fmt.Println("Available MIDI Input Ports:")
	ins, err := obs.InputPorts()
	if err != nil {
		log.Printf("Error getting inputs: %v", err)
		return
	}
	for i, in := range ins {
		fmt.Printf("  %d: [%s] %s\n", i, in.API, in.String())
	}

	fmt.Println("\nAvailable MIDI Output Ports:")
	outs, err := obs.OutputPorts()
	if err != nil {
		log.Printf("Error getting outputs: %v", err)
		return
	}
	for i, out := range outs {
		fmt.Printf("  %d: [%s] %s\n", i, out.API, out.String())
	}
}

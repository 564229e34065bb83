package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/odaacabeef/midicore/drivers/alsaraw"
	_ "github.com/odaacabeef/midicore/drivers/coremidi"
	_ "github.com/odaacabeef/midicore/drivers/dummy"
	_ "github.com/odaacabeef/midicore/drivers/network"
	_ "github.com/odaacabeef/midicore/drivers/rtmidi"
	_ "github.com/odaacabeef/midicore/drivers/unimplemented"
	_ "github.com/odaacabeef/midicore/drivers/winmm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--list":
		listPorts()
		return
	case "--virtual":
		if len(os.Args) < 3 {
			fmt.Println("Error: a virtual port name is required")
			fmt.Println("Usage: miditool --virtual <port-name>")
			os.Exit(1)
		}
		runVirtualPort(os.Args[2])
		return
	}

	if len(os.Args) < 3 {
		fmt.Println("Error: both input and output port names are required")
		usage()
		os.Exit(1)
	}

	inputName := os.Args[1]
	outputName := os.Args[2]

	forwarder, err := NewForwarder(inputName, outputName)
	if err != nil {
		log.Fatalf("Failed to create MIDI forwarder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := forwarder.Start(ctx); err != nil {
		log.Fatalf("Error during MIDI forwarding: %v", err)
	}
}

func usage() {
	fmt.Println("Usage: miditool <input-port-name> <output-port-name>")
	fmt.Println("   or: miditool --list")
	fmt.Println("   or: miditool --virtual <port-name>")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  miditool \"MIDI Device 1\" \"MIDI Device 2\"")
	fmt.Println("  miditool --list")
	fmt.Println("  miditool --virtual \"midicore Bridge\"")
}

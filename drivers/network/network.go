package network

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

func init() {
	coredrivers.Register(backend{})
}

type backend struct{}

func (backend) API() coredrivers.API          { return coredrivers.Network }
func (backend) Name() string                  { return "network" }
func (backend) DisplayName() string           { return "Network MIDI (OSC/UDP)" }
func (backend) Available() bool               { return true }

func (backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	dec := instate.NewDecoder(instate.Options{
		Mode:   cfg.Mode,
		Caps:   merr.Capabilities{Absolute: true, Monotonic: true},
		Ignore: instate.IgnoreMask{SysEx: cfg.Ignore.SysEx, Timing: cfg.Ignore.Timing, Sensing: cfg.Ignore.Sensing},
	})
	return &in{cfg: cfg, dec: dec}, nil
}

func (backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	return &out{cfg: cfg}, nil
}

func (backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	return &observer{}, nil
}

// in listens on a UDP socket and reassembles OSC datagrams carrying
// ",m"/",M" typed MIDI payloads into Messages.
type in struct {
	cfg  coredrivers.Config
	dec  *instate.Decoder

	mu     sync.Mutex
	conn   *net.UDPConn
	stop   chan struct{}
	wg     sync.WaitGroup
	opened bool
	lastTS atomic.Int64
}

func (i *in) API() coredrivers.API { return coredrivers.Network }

func (i *in) OpenPort(p port.Info, localName string) error {
	addr, err := net.ResolveUDPAddr("udp", p.Device)
	if err != nil {
		return merr.Wrap(merr.InvalidArgument, err, "invalid network port address")
	}
	return i.open(addr)
}

func (i *in) OpenVirtualPort(localName string) error {
	// A virtual network input listens on an ephemeral local port; there
	// is no remote peer to resolve ahead of time.
	return i.open(&net.UDPAddr{Port: 0})
}

func (i *in) open(addr *net.UDPAddr) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.opened {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to bind UDP socket")
	}
	i.conn = conn
	i.opened = true
	i.stop = make(chan struct{})
	i.wg.Add(1)
	go i.readLoop(conn, i.stop)
	return nil
}

func (i *in) readLoop(conn *net.UDPConn, stop chan struct{}) {
	defer i.wg.Done()
	buf := make([]byte, MaxDatagramBytes)
	for {
		select {
		case <-stop:
			return
		default:
		}
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		now := merr.SteadyNow()
		i.lastTS.Store(int64(now))
		_, groups, words, err := Decode(buf[:n])
		if err != nil {
			if i.cfg.OnWarn != nil {
				i.cfg.OnWarn(err.Error())
			}
			continue
		}
		for _, g := range groups {
			n := message.DataLen(g[1]) + 1
			if n > 3 {
				n = 3
			}
			_ = i.dec.Feed(g[1:1+n], now, 0, func(m message.Message) {
				if i.cfg.OnMessage != nil {
					i.cfg.OnMessage(m)
				}
			})
		}
		if len(words) > 0 && i.cfg.OnUMP != nil {
			var arr [4]uint32
			copy(arr[:], words)
			i.cfg.OnUMP(message.UMP{Words: arr, Len: len(words), Timestamp: now})
		}
	}
}

func (i *in) ClosePort() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.opened {
		return nil
	}
	close(i.stop)
	err := i.conn.Close()
	i.wg.Wait()
	i.opened = false
	if err != nil {
		return merr.Wrap(merr.IOError, err, "failed to close UDP socket")
	}
	return nil
}

func (i *in) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "network ports are addressed by endpoint, not renamed")
}

func (i *in) IsPortOpen() bool         { i.mu.Lock(); defer i.mu.Unlock(); return i.opened }
func (i *in) IsPortConnected() bool    { return i.IsPortOpen() }
func (i *in) AbsoluteTimestamp() int64 { return i.lastTS.Load() }

// out sends OSC datagrams carrying MIDI 1/UMP payloads to a fixed peer.
type out struct {
	cfg  coredrivers.Config
	conn *net.UDPConn
	addr *net.UDPAddr
}

func (o *out) API() coredrivers.API { return coredrivers.Network }

func (o *out) OpenPort(p port.Info, localName string) error {
	addr, err := net.ResolveUDPAddr("udp", p.Device)
	if err != nil {
		return merr.Wrap(merr.InvalidArgument, err, "invalid network port address")
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to connect UDP socket")
	}
	o.conn, o.addr = conn, addr
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "network outputs require a remote endpoint")
}

func (o *out) ClosePort() error {
	if o.conn == nil {
		return nil
	}
	err := o.conn.Close()
	o.conn = nil
	if err != nil {
		return merr.Wrap(merr.IOError, err, "failed to close UDP socket")
	}
	return nil
}

func (o *out) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "network ports are addressed by endpoint, not renamed")
}

func (o *out) IsPortOpen() bool { return o.conn != nil }

func (o *out) SendMessage(b []byte) error {
	if o.conn == nil {
		return merr.New(merr.NotConnected, "output port not open")
	}
	var group [4]byte
	n := copy(group[1:], b)
	_ = n
	datagram, err := EncodeMIDI1("/midi", [][4]byte{group})
	if err != nil {
		return err
	}
	if _, err := o.conn.Write(datagram); err != nil {
		return merr.Wrap(merr.IOError, err, "UDP send failed")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	if o.conn == nil {
		return merr.New(merr.NotConnected, "output port not open")
	}
	datagram, err := EncodeUMP("/midi", words)
	if err != nil {
		return err
	}
	if _, err := o.conn.Write(datagram); err != nil {
		return merr.Wrap(merr.IOError, err, "UDP send failed")
	}
	return nil
}

// observer has no hardware enumeration: network peers are configured by
// address, not discovered, so the port lists are always empty and no
// hotplug events ever fire.
type observer struct{}

func (o *observer) API() coredrivers.API             { return coredrivers.Network }
func (o *observer) InputPorts() ([]port.Info, error)  { return nil, nil }
func (o *observer) OutputPorts() ([]port.Info, error) { return nil, nil }
func (o *observer) Close() error                      { return nil }

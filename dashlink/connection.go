package dashlink

import (
	"io"
	"net"
	"strings"

	"go.bug.st/serial"
)

const (
	tcpPrefix = "tcp:"

	// DefaultBaudRate is used when no baud rate is configured. On CDC ACM
	// links the rate is nominal, but the OS still requires one.
	DefaultBaudRate = 115200
)

// Connection is the raw byte-stream link to the display.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

func openTCPConnection(addr string) (Connection, error) {
	return net.Dial("tcp", addr)
}

func openSerialConnection(port string, baud int) (Connection, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
	}
	return serial.Open(port, mode)
}

// Open connects to the display at the given port name. Serial port names
// are passed through to the OS; a "tcp:host:port" name connects over TCP
// instead, which is useful against an emulated device.
func Open(name string, baud int) (Connection, error) {
	if strings.HasPrefix(name, tcpPrefix) {
		return openTCPConnection(name[len(tcpPrefix):])
	}
	return openSerialConnection(name, baud)
}

// AvailablePorts returns the list of serial ports in the system that can
// be used to reach a display.
func AvailablePorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		if pe, ok := err.(*serial.PortError); ok {
			if pe.Code() == serial.ErrorEnumeratingPorts {
				// This happens on Windows when there are
				// no serial ports
				return nil, nil
			}
		}
		return nil, err
	}
	return ports, nil
}

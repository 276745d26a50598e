package machine

import (
	"errors"
	"io"

	"github.com/ezrec/rvemu/device"
)

// Console bridges a UART to host byte streams.
//
// Input must not block; a reader with no data ready returns zero bytes.
type Console struct {
	Input  io.Reader
	Output io.Writer

	buffer [device.FIFO_DEPTH * 4]byte
	closed bool
}

// Pump moves received host bytes into the UART, and transmitted UART
// bytes out to the host.
func (con *Console) Pump(uart *device.Uart) (err error) {
	if con.Input != nil && !con.closed && uart.CanReceive() {
		size := min(uart.ReceiveSpace(), len(con.buffer))
		n, rerr := con.Input.Read(con.buffer[:size])
		if n > 0 {
			uart.Inject(con.buffer[:n])
		}
		switch {
		case errors.Is(rerr, io.EOF):
			con.closed = true
		case rerr != nil:
			return rerr
		}
	}

	if con.Output != nil && uart.CanTransmit() {
		for {
			n := uart.Drain(con.buffer[:])
			if n == 0 {
				break
			}
			_, err = con.Output.Write(con.buffer[:n])
			if err != nil {
				return
			}
		}
	}

	return
}

// Closed returns true once Input has reported end of file.
func (con *Console) Closed() bool {
	return con.closed
}

package device

import (
	"iter"

	"github.com/ezrec/rvemu/internal"
)

// UART register offsets.
const (
	UART_REG_TXDATA = uint32(0x000) // Transmit data; bit 31 reads as FIFO full
	UART_REG_RXDATA = uint32(0x004) // Receive data; bit 31 reads as FIFO empty
	UART_REG_TXCTRL = uint32(0x008) // Transmit control
	UART_REG_RXCTRL = uint32(0x00c) // Receive control
	UART_REG_IE     = uint32(0x010) // Interrupt enable
	UART_REG_IP     = uint32(0x014) // Interrupt pending
	UART_REG_DIV    = uint32(0x018) // Baud rate divisor, accepted but unused
)

// UART register bits.
const (
	UART_DATA_FLAG = uint32(1 << 31) // txdata full, rxdata empty

	UART_TXCTRL_TXEN  = uint32(1 << 0)
	UART_TXCTRL_NSTOP = uint32(1 << 1)
	UART_RXCTRL_RXEN  = uint32(1 << 0)

	UART_CTRL_CNT_SHIFT = 16
	UART_CTRL_CNT_MASK  = uint32(0b111 << UART_CTRL_CNT_SHIFT) // watermark level

	UART_IP_TXWM = uint32(1 << 0)
	UART_IP_RXWM = uint32(1 << 1)
	UART_IE_MASK = UART_IP_TXWM | UART_IP_RXWM
)

var _uart_defines = map[string]uint32{
	"UART_TXDATA":     UART_REG_TXDATA,
	"UART_RXDATA":     UART_REG_RXDATA,
	"UART_TXCTRL":     UART_REG_TXCTRL,
	"UART_RXCTRL":     UART_REG_RXCTRL,
	"UART_IE":         UART_REG_IE,
	"UART_IP":         UART_REG_IP,
	"UART_DIV":        UART_REG_DIV,
	"UART_DATA_FLAG":  UART_DATA_FLAG,
	"UART_TXEN":       UART_TXCTRL_TXEN,
	"UART_RXEN":       UART_RXCTRL_RXEN,
	"UART_IP_TXWM":    UART_IP_TXWM,
	"UART_IP_RXWM":    UART_IP_RXWM,
	"UART_CNT_SHIFT":  UART_CTRL_CNT_SHIFT,
	"UART_FIFO_DEPTH": FIFO_DEPTH,
}

// Uart is a memory mapped serial port with 8 byte transmit and receive
// queues. Only 32-bit register accesses are supported.
//
// The CPU side fills the transmit queue and drains the receive queue
// through registers; the host side drains the transmit queue with Drain()
// and fills the receive queue with Inject().
type Uart struct {
	Region

	rx Fifo
	tx Fifo

	txctrl uint32
	rxctrl uint32
	ie     uint32
	ip     uint32
	div    uint32
}

var _ Device = (*Uart)(nil)

// NewUart creates a UART occupying [base, top].
func NewUart(name string, base, top uint32) (uart *Uart) {
	uart = &Uart{
		Region: MakeRegion(name, base, top),
	}

	uart.Reset()

	return
}

// Defines returns an iterator over the UART register symbols.
func (uart *Uart) Defines() iter.Seq2[string, string] {
	return internal.HexDefines(_uart_defines)
}

// Reset clears the control registers and both queues.
func (uart *Uart) Reset() {
	uart.rx.Reset()
	uart.tx.Reset()
	uart.txctrl = 0
	uart.rxctrl = 0
	uart.ie = 0
	uart.ip = 0
	uart.div = 0
}

func (uart *Uart) rxWatermark() int {
	return int((uart.rxctrl & UART_CTRL_CNT_MASK) >> UART_CTRL_CNT_SHIFT)
}

func (uart *Uart) txWatermark() int {
	return int((uart.txctrl & UART_CTRL_CNT_MASK) >> UART_CTRL_CNT_SHIFT)
}

// update recomputes the transmit watermark and drives the interrupt line.
func (uart *Uart) update() {
	if uart.tx.Count() < uart.txWatermark() {
		uart.ip |= UART_IP_TXWM
	} else {
		uart.ip &^= UART_IP_TXWM
	}

	uart.SignalInterrupt((uart.ie & uart.ip) != 0)
}

// ReadU32 reads a UART register.
func (uart *Uart) ReadU32(reg uint32) (value uint32, ok bool) {
	switch reg {
	case UART_REG_TXDATA:
		if uart.tx.Full() {
			value |= UART_DATA_FLAG
		}
	case UART_REG_RXDATA:
		data, has := uart.rx.Dequeue()
		if has {
			value = uint32(data)
		} else {
			value = UART_DATA_FLAG
		}
		if uart.rx.Count() <= uart.rxWatermark() {
			uart.ip &^= UART_IP_RXWM
			uart.update()
		}
	case UART_REG_TXCTRL:
		value = uart.txctrl
	case UART_REG_RXCTRL:
		value = uart.rxctrl
	case UART_REG_IE:
		value = uart.ie
	case UART_REG_IP:
		value = uart.ip
	case UART_REG_DIV:
		value = uart.div
	default:
		return
	}

	return value, true
}

// WriteU32 writes a UART register. Writes to txdata while the transmit
// queue is full are dropped; software is expected to poll the full flag.
func (uart *Uart) WriteU32(reg uint32, value uint32) (ok bool) {
	switch reg {
	case UART_REG_TXDATA:
		uart.tx.Enqueue(uint8(value & 0xff))
		uart.update()
	case UART_REG_RXDATA:
		// read only
	case UART_REG_TXCTRL:
		uart.txctrl = value
		uart.update()
	case UART_REG_RXCTRL:
		uart.rxctrl = value
	case UART_REG_IE:
		uart.ie = value & UART_IE_MASK
		uart.update()
	case UART_REG_IP:
		// read only
	case UART_REG_DIV:
		uart.div = value
	default:
		return
	}

	return true
}

// CanReceive returns true if the receiver is enabled and has queue space.
func (uart *Uart) CanReceive() bool {
	return (uart.rxctrl&UART_RXCTRL_RXEN) != 0 && !uart.rx.Full()
}

// ReceiveSpace returns the free space of the receive queue.
func (uart *Uart) ReceiveSpace() int {
	return uart.rx.Free()
}

// Inject delivers received bytes from the host into the receive queue,
// returning the count accepted. Bytes beyond the queue capacity are not
// accepted. Raises the receive watermark interrupt when the queue level
// exceeds the watermark.
func (uart *Uart) Inject(data []byte) (n int) {
	n = uart.rx.Put(data)

	if uart.rx.Count() > uart.rxWatermark() {
		uart.ip |= UART_IP_RXWM
		uart.update()
	}

	return
}

// CanTransmit returns true if the transmitter is enabled and has queued data.
func (uart *Uart) CanTransmit() bool {
	return (uart.txctrl&UART_TXCTRL_TXEN) != 0 && !uart.tx.Empty()
}

// TransmitCount returns the count of queued transmit bytes.
func (uart *Uart) TransmitCount() int {
	return uart.tx.Count()
}

// Drain removes queued transmit bytes for the host, returning the count.
func (uart *Uart) Drain(data []byte) (n int) {
	n = uart.tx.Get(data)
	if n > 0 {
		uart.update()
	}
	return
}

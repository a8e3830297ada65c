// Package hostio drives a real terminal as the stand-in for the kernel's
// operator interface (§6): it puts the controlling TTY into raw mode so
// keystrokes reach the UART i-service one byte at a time, the same way a
// real UART would deliver one RDA interrupt per character.
//
// This is the one place golang.org/x/sys is rewired from the teacher's
// TUN/TAP networking use (core_engine/network/tap_device.go) to rtx32's
// domain: same direct-ioctl style, different ioctl (TCGETS/TCSETS instead
// of TUNSETIFF).
package hostio

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"rtx32/kernel"
)

// Console owns a raw-mode terminal and pumps bytes between it and a
// Kernel's UART i-service.
type Console struct {
	fd       int
	original unix.Termios
	log      *logrus.Entry
}

// NewConsole puts fd (normally os.Stdin.Fd()) into raw mode, saving the
// original termios settings so Restore can put it back. Grounded on
// tap_device.go's NewTapDevice: open a real OS resource, configure it with
// a direct ioctl, wrap failures with fmt.Errorf.
func NewConsole(fd int, logger *logrus.Logger) (*Console, error) {
	if logger == nil {
		logger = logrus.New()
	}
	orig, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("hostio: failed to read termios for fd %d: %w", fd, err)
	}

	raw := *orig
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	raw.Iflag &^= unix.IXON | unix.ICRNL
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, fmt.Errorf("hostio: failed to set raw termios for fd %d: %w", fd, err)
	}

	return &Console{fd: fd, original: *orig, log: logger.WithField("component", "hostio")}, nil
}

// Restore puts the terminal back into its original mode.
func (c *Console) Restore() error {
	if err := unix.IoctlSetTermios(c.fd, unix.TCSETS, &c.original); err != nil {
		return fmt.Errorf("hostio: failed to restore termios for fd %d: %w", c.fd, err)
	}
	return nil
}

// Run reads raw bytes from the terminal and feeds them to k's UART
// i-service, and polls for outgoing UART output to write to out, until
// stop is closed. Both directions are genuinely exercised: incoming bytes
// drive Kernel.UARTByteIn, outgoing messages drive Kernel.UARTDrainOutput.
//
// The original's UART i-service is interrupt-driven on both RDA and THRE;
// rtx32 has no hardware THRE register to interrupt on, so the outgoing
// direction is polled at a short fixed interval instead (see
// kernel.Kernel.UARTDrainOutput's doc comment).
func (c *Console) Run(k *kernel.Kernel, out *os.File, stop <-chan struct{}) {
	go c.readLoop(k, stop)
	go c.writeLoop(k, out, stop)
}

func (c *Console) readLoop(k *kernel.Kernel, stop <-chan struct{}) {
	buf := make([]byte, 1)
	f := os.NewFile(uintptr(c.fd), "/dev/tty")
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := f.Read(buf)
		if err != nil {
			c.log.WithError(err).Warn("console read failed")
			return
		}
		if n == 1 {
			k.UARTByteIn(buf[0])
		}
	}
}

func (c *Console) writeLoop(k *kernel.Kernel, out *os.File, stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for {
				wrote, err := k.UARTDrainOutput(out)
				if err != nil {
					c.log.WithError(err).Warn("console write failed")
					break
				}
				if !wrote {
					break
				}
			}
		}
	}
}

// Command rtxsim boots a Kernel with a small set of demonstration
// processes, attaches the host terminal as its UART i-service peer, and
// runs until interrupted. It plays the role the teacher repo has no
// analogue for (that repo is a library with no cmd/) — wired up the way
// virtual_machine.go's NewVirtualMachine/Run pair is driven from the
// outside, just with no pre-existing caller to copy.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"rtx32/hostio"
	"rtx32/kernel"
)

const (
	pidEcho    = 1
	pidConsole = 2
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	cfg := kernel.Config{
		Processes: []kernel.ProcessConfig{
			{PID: pidEcho, Priority: kernel.PriorityMedium, Entry: echoProcess},
			{PID: pidConsole, Priority: kernel.PriorityHigh, Entry: consoleProcess},
		},
		ConsolePID: pidConsole,
		Logger:     logger,
	}
	k := kernel.New(cfg)

	stop := make(chan struct{})
	k.StartTimer(stop)

	console, err := hostio.NewConsole(int(os.Stdin.Fd()), logger)
	if err != nil {
		logger.WithError(err).Warn("failed to attach terminal, running headless")
	} else {
		defer console.Restore()
		console.Run(k, os.Stdout, stop)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		close(stop)
		k.Stop()
	}()

	k.Run()
}

// consoleProcess receives MsgUserInput messages produced from incoming
// UART bytes and echoes each byte back out through the UART i-service,
// the smallest possible demonstration of the operator-interface loop
// described in §6.
func consoleProcess(h *kernel.Handle) {
	for {
		msg, _, err := h.Receive()
		if err != nil {
			continue
		}
		if msg.MType == kernel.MsgUserInput {
			out, err := h.RequestMemory()
			if err == nil {
				out.MType = kernel.MsgCRTDisplay
				out.Payload[0] = msg.Payload[0]
				out.Payload[1] = 0
				h.Send(h.UARTPID(), out)
			}
		}
		h.ReleaseMemory(msg)
	}
}

// echoProcess is a placeholder normal process demonstrating DelayedSend:
// it requests a block, stamps it, and schedules it back to itself one
// hundred ticks later, forever.
func echoProcess(h *kernel.Handle) {
	for {
		blk, err := h.RequestMemory()
		if err != nil {
			h.Yield()
			continue
		}
		blk.MType = kernel.MsgDefault
		h.DelayedSend(h.PID(), blk, 100)
		msg, _, err := h.Receive()
		if err == nil {
			h.ReleaseMemory(msg)
		}
	}
}

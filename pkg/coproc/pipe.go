package coproc

import (
	"context"
	"net"

	"github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/link"
)

// Pair is a CPU side link connected to a Sim in memory.
type Pair struct {
	Serial *link.Serial
	Sim    *Sim

	cpuConn, simConn net.Conn
}

// NewPair connects a Serial to a new Sim over net.Pipe.
func NewPair() *Pair {
	cpuConn, simConn := net.Pipe()
	return &Pair{
		Serial:  link.NewSerial(link.NewClient(link.NewFIFO(cpuConn))),
		Sim:     New(simConn),
		cpuConn: cpuConn,
		simConn: simConn,
	}
}

// Run runs both sides until ctx is done or one side fails.
func (p *Pair) Run(ctx context.Context) error {
	runner := framework.NewRunnerWith(ctx).Go(
		framework.Essential(framework.NamedRun("cpu-link", p.Serial.Client)),
		framework.Essential(framework.NamedRun("coproc", p.Sim)),
	)
	return framework.RunWithContextCloser(ctx, p, runner.Wait)
}

// Close closes both ends of the pipe.
func (p *Pair) Close() error {
	var errs framework.AggregatedError
	return errs.Add(p.cpuConn.Close(), p.simConn.Close()).Aggregate()
}

// Ready tells whether both sides are synchronized.
func (p *Pair) Ready() bool {
	return p.Serial.Client.FIFO().State().IsReady() && p.Sim.FIFO().State().IsReady()
}

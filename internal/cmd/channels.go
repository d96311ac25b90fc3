package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

// Channels lists every input channel with its local and protocol name.
type Channels struct{}

func (c *Channels) Run() error {
	return writeChannels(os.Stdout)
}

func writeChannels(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tNAME")
	for i := uint8(0); i < gamecontrol.NumAxes; i++ {
		for _, sign := range []int8{1, -1} {
			ch := gamecontrol.AxisChannel(i, sign)
			fmt.Fprintf(tw, "%s\t%s\n", ch.LocalName(), ch.RemoteName())
		}
	}
	for i := uint8(0); i < gamecontrol.NumButtons; i++ {
		ch := gamecontrol.ButtonChannel(i)
		fmt.Fprintf(tw, "%s\t%s\n", ch.LocalName(), ch.RemoteName())
	}
	return tw.Flush()
}

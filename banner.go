package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

const bannerArt = `
       _     _
  __ _| |___| |_ _ __ ___  ___ ___
 / _` + "`" + ` | / __| __| '__/ _ \/ __/ __|
| (_| | \__ \ |_| | |  __/\__ \__ \
 \__, |_|___/\__|_|  \___||___/___/
 |___/
`

func printBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String(bannerArt).Foreground(out.Color("1")).Bold())
	fmt.Fprintln(w, "Warning: This will max out GPU, CPU, and RAM. Use with caution.")
	fmt.Fprintln(w, "Press any key in the window to start. Press 'q' to stop.")
}

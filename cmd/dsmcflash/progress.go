package main

import (
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/moffa90/go-dsmc/nand"
)

// progressBar renders transfer progress in bytes. The bar is created on the
// first update, once the total size is known. A progressBar without output
// discards updates.
type progressBar struct {
	out io.Writer
	bar *pb.ProgressBar
}

// newProgressBar returns a bar on stderr when stderr is a terminal or
// --progress was given.
func (a *app) newProgressBar() *progressBar {
	if a.flags.progress || isTerminal(a.stderr) {
		return &progressBar{out: a.stderr}
	}
	return &progressBar{}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *progressBar) update(progress nand.Progress) {
	if p.out == nil {
		return
	}
	if p.bar == nil {
		p.bar = pb.New64(progress.TotalBytes).SetUnits(pb.U_BYTES)
		p.bar.Output = p.out
		p.bar.ManualUpdate = true
		p.bar.ShowSpeed = true
		p.bar.Start()
	}
	p.bar.Set64(progress.BytesDone)
	p.bar.Update()
}

func (p *progressBar) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}

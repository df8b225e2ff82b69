package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/fumin/phicomp"
	"github.com/fumin/phicomp/rgbd"
)

var (
	decompress = flag.Bool("d", false, "decompress instead of compress")
	useRGBD    = flag.Bool("rgbd", false, "enable the experimental RGBD bias")
	rgbdWeight = flag.Float64("rgbd-weight", 0.15, "RGBD bias weight")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [filename]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	if err := run(flag.Arg(0), *decompress, *useRGBD, *rgbdWeight); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(name string, doDecompress, useRGBD bool, rgbdWeight float64) error {
	var in io.Reader = os.Stdin
	if name != "" {
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "")
		}
		defer f.Close()
		in = f
	}

	data, err := ioutil.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "")
	}

	c := phicomp.NewCoder(phicomp.Options{RGBD: rgbd.Options{UseRGBD: useRGBD, PhiWeight: rgbdWeight}})

	var out []byte
	if doDecompress {
		out, err = c.Decompress(data)
	} else {
		out, err = c.Compress(data)
	}
	if err != nil {
		return errors.Wrap(err, "")
	}

	if _, err := os.Stdout.Write(out); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"q.log/transport/instance"
	"q.log/transport/model"
	"q.log/transport/report"
	"q.log/transport/transport"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("transport: ")

	opts := transport.DefaultOptions()
	flag.IntVar(&opts.MaxIterations, "max-iter", 0, "iteration cap (0 = size-based default)")
	flag.Float64Var(&opts.Epsilon, "eps", transport.DefaultEpsilon, "zero tolerance")
	flag.BoolVar(&opts.Verbose, "v", false, "log every iteration")
	verify := flag.Bool("verify", false, "cross-check the optimum with GLPK")
	htmlPath := flag.String("html", "", "write the convergence chart as HTML to this file")
	pngPath := flag.String("png", "", "save the convergence chart as an image to this file")
	mpsPath := flag.String("write-mps", "", "also store the problem as an MPS file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] problem-file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	r := instance.NewReader(flag.Arg(0))
	p, err := r.ReadProblem()
	if err != nil {
		log.Fatal(err)
	}

	report.PrintMatrix(os.Stdout, "C", p.Cost())
	report.PrintVector(os.Stdout, "s", p.Supply())
	report.PrintVector(os.Stdout, "d", p.Demand())

	res, err := transport.Solve(p, opts)
	if err != nil {
		log.Fatal(err)
	}

	report.PrintMatrix(os.Stdout, "X0", res.Initial)
	fmt.Printf("Z0 = %v\n", res.InitialCost)
	report.PrintMatrix(os.Stdout, "X", res.Allocation)
	fmt.Printf("Z = %v\n", res.Cost)
	fmt.Printf("iterations = %d\n", res.Iterations)
	if res.Degenerate {
		fmt.Println("note: degenerate final basis, some basic cells ship nothing")
	}

	if *verify {
		z, _, err := instance.SolveGLPK(p)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Z (glpk) = %v\n", z)
		if math.Abs(z-res.Cost) > model.DefaultTolerance*math.Max(1, math.Abs(z)) {
			log.Fatalf("optimum differs from glpk: %v != %v", res.Cost, z)
		}
	}

	if *mpsPath != "" {
		if err = instance.WriteMPS(p, *mpsPath); err != nil {
			log.Fatal(err)
		}
	}
	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			log.Fatal(err)
		}
		if err = report.WriteConvergenceHTML(f, res.Trace); err != nil {
			log.Fatal(err)
		}
		if err = f.Close(); err != nil {
			log.Fatal(err)
		}
	}
	if *pngPath != "" {
		if err = report.SaveConvergencePNG(*pngPath, res.Trace); err != nil {
			log.Fatal(err)
		}
	}
}

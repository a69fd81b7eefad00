// Команда catalog-lint проверяет файл каталога тарифов теми же правилами,
// что и сервер при запуске, и печатает сводку по категориям.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"fare-estimator/internal/catalog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalog-lint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	labels := catalog.DefaultLabels()
	path := fs.String("file", "", "path to the catalog YAML file (embedded catalog when empty)")
	fs.StringVar(&labels.CruiseShipPrefix, "cruise-ship-prefix", labels.CruiseShipPrefix, "category name prefix of cruise ship berth fares")
	fs.StringVar(&labels.KingstownTourName, "tour-name", labels.KingstownTourName, "category name of the Kingstown tour")
	fs.StringVar(&labels.PerPassengerSuffix, "per-passenger-suffix", labels.PerPassengerSuffix, "category suffix of per passenger fares")
	fs.StringVar(&labels.SmallGroupSuffix, "small-group-suffix", labels.SmallGroupSuffix, "category suffix of small group fares")
	quiet := fs.Bool("q", false, "print nothing on success")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var (
		cat *catalog.Catalog
		err error
	)
	source := *path
	if source == "" {
		source = "embedded"
		cat, err = catalog.Embedded(labels)
	} else {
		cat, err = catalog.LoadFile(source, labels)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", source, err)
		return 1
	}

	if *quiet {
		return 0
	}

	fmt.Fprintf(stdout, "%s: version %q, %d categories\n", source, cat.Version(), cat.Len())
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tSHAPE\tITEMS\tCATEGORY")
	for _, c := range cat.Categories() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Mode(), c.Shape(), len(catalog.Items(c)), c.CategoryName())
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "failed to write summary: %v\n", err)
		return 1
	}
	return 0
}

package main

import (
	"os"

	"github.com/nsxbet/warehouse-sql-analyzer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

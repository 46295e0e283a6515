// Command testdb checks that DATABASE_URL is reachable and that the schema
// and reference data can be applied.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"venchmarks/pkg"
)

func main() {
	_ = godotenv.Load()

	pkg.InitDB()
	defer pkg.DB.Close()

	ctx := context.Background()
	if err := pkg.Migrate(ctx, pkg.DB); err != nil {
		log.Fatal(err)
	}
	if err := pkg.Seed(ctx, pkg.DB); err != nil {
		log.Fatal(err)
	}

	var compilers, benchmarks, machines int
	for _, q := range []struct {
		dst   *int
		table string
	}{
		{&compilers, "compilers"},
		{&benchmarks, "benchmarks"},
		{&machines, "machines"},
	} {
		if err := pkg.DB.Get(q.dst, "SELECT COUNT(*) FROM "+q.table); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("compilers=%d benchmarks=%d machines=%d\n", compilers, benchmarks, machines)
}

// atlas-loader 輸出 gorm model 對應的 DDL，給 atlas.hcl 的 external_schema 使用
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"lotbid/adapters/database"
)

func main() {
	dialect := flag.String("dialect", "postgres", "postgres or sqlite")
	flag.Parse()

	stmts, err := gormschema.New(*dialect).Load(database.Models()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	_, _ = io.WriteString(os.Stdout, stmts)
}

// Package all wires every built-in dataset source into the dataset factory.
//
// This package exists purely for side effects: importing it (usually as a
// blank import in the wiring layer) runs the init functions of each concrete
// source, which register their factories with the dataset package. After the
// import, the following source kinds are available via dataset.New:
//
//   - "csv"      (internal/dataset/csvds)
//   - "postgres" (internal/dataset/postgres)
//   - "sqlite"   (internal/dataset/sqlite)
//   - "mssql"    (internal/dataset/mssql)
//
// Binaries that only need a subset can blank-import the individual source
// packages instead.
package all

import (
	_ "github.com/ysing58/dataquality/internal/dataset/csvds"
	_ "github.com/ysing58/dataquality/internal/dataset/mssql"
	_ "github.com/ysing58/dataquality/internal/dataset/postgres"
	_ "github.com/ysing58/dataquality/internal/dataset/sqlite"
)

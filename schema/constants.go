package schema

// Custom string types for type safety.
type (
	// PathType distinguishes source modules from the packages that contain them.
	PathType string

	// OutputMode represents the format of the output.
	OutputMode string

	// ScoringFormula names a versioned hotspot formula.
	ScoringFormula string

	// SortField represents the record field used for ordering.
	SortField string

	// ColumnLayout selects the CSV column set.
	ColumnLayout string

	// HistoryBackend represents the implementation used to read git history.
	HistoryBackend string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All path types supported.
const (
	ModulePath  PathType = "module"
	PackagePath PathType = "package"
	AllPaths    PathType = "all" // filter only, never assigned to a record
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	MarkdownOut OutputMode = "markdown"
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	ParquetOut  OutputMode = "parquet"
	XLSXOut     OutputMode = "xlsx"
)

// All scoring formulas supported.
const (
	RatioFormula   ScoringFormula = "ratio" // default, version 2
	ProductFormula ScoringFormula = "product"
)

// FormulaVersions maps each formula to the version it was introduced as.
var FormulaVersions = map[ScoringFormula]int{
	ProductFormula: 1,
	RatioFormula:   2,
}

// All sort fields supported.
const (
	SortHotspot      SortField = "hotspot_index" // default
	SortPath         SortField = "path"
	SortMI           SortField = "maintainability_index"
	SortHalstead     SortField = "halstead_volume"
	SortCyclomatic   SortField = "cyclomatic_complexity"
	SortLOC          SortField = "lines_of_code"
	SortComments     SortField = "comments_percentage"
	SortChangesCount SortField = "changes_count"
)

// All CSV layouts supported.
const (
	ExtendedColumns ColumnLayout = "extended" // default
	BasicColumns    ColumnLayout = "basic"
)

// All history backends supported.
const (
	ExecHistory   HistoryBackend = "exec" // default
	NativeHistory HistoryBackend = "native"
)

// All cache backends supported.
const (
	NoneBackend       DatabaseBackend = "none" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// ValidPathTypes lists all valid path type filters.
var ValidPathTypes = map[PathType]struct{}{
	ModulePath:  {},
	PackagePath: {},
	AllPaths:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	MarkdownOut: {},
	CSVOut:      {},
	JSONOut:     {},
	ParquetOut:  {},
	XLSXOut:     {},
}

// ValidScoringFormulas lists all valid scoring formulas.
var ValidScoringFormulas = map[ScoringFormula]struct{}{
	RatioFormula:   {},
	ProductFormula: {},
}

// ValidSortFields lists all valid sort fields.
var ValidSortFields = map[SortField]struct{}{
	SortHotspot:      {},
	SortPath:         {},
	SortMI:           {},
	SortHalstead:     {},
	SortCyclomatic:   {},
	SortLOC:          {},
	SortComments:     {},
	SortChangesCount: {},
}

// ValidColumnLayouts lists all valid CSV layouts.
var ValidColumnLayouts = map[ColumnLayout]struct{}{
	ExtendedColumns: {},
	BasicColumns:    {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[HistoryBackend]struct{}{
	ExecHistory:   {},
	NativeHistory: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	NoneBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

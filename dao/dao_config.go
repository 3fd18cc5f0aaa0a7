package dao

type DaoConfig struct {
	DatasourceType string

	// DatasourceName is the name the client was registered under in the
	// datasource package.
	DatasourceName string

	// hologres, postgres, mysql, tablestore
	TableName string

	// file
	FilePath string

	// redis, memory
	CacheKey string
}

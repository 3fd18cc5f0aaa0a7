package constants

type FieldType string

const (
	Field_Type_Text      FieldType = "text"
	Field_Type_Number    FieldType = "number"
	Field_Type_Date      FieldType = "date"
	Field_Type_Boolean   FieldType = "boolean"
	Field_Type_Email     FieldType = "email"
	Field_Type_Url       FieldType = "url"
	Field_Type_Enum      FieldType = "enum"
	Field_Type_Reference FieldType = "reference"
)

// record types known to the record store
const (
	Record_Type_Table       = "table"
	Record_Type_TableRecord = "tableRecord"
	Record_Type_AccessToken = "tableAccessToken"
)

// reserved keys of a stored record
const (
	Record_Key_Id        = "_id"
	Record_Key_CreatedAt = "_created_at"
	Record_Key_UpdatedAt = "_updated_at"
	Record_Key_Table     = "table"
)

const (
	Datasource_Type_Memory     = "memory"
	Datasource_Type_Hologres   = "hologres"
	Datasource_Type_Postgres   = "postgres"
	Datasource_Type_MySQL      = "mysql"
	Datasource_Type_TableStore = "tablestore"
	Datasource_Type_Redis      = "redis"
	Datasource_Type_File       = "file"
)

const (
	// PageSize is the number of records or tables fetched per page.
	PageSize = 50

	// SaveFetchLimit caps the existing records fetched before a save.
	SaveFetchLimit = 1000

	// RecentTableLimit caps the recently opened tables list.
	RecentTableLimit = 20

	// RecentTableKey is the cache key holding the recently opened tables.
	RecentTableKey = "apitable-recent-table"

	// NotFoundPath is where the editor navigates when a table is missing.
	NotFoundPath = "/errors/404"
)

const Analytics_Category_Table = "Table"

const (
	Analytics_Action_SaveRecords = "Save table records"
	Analytics_Action_AddField    = "Add a new column"
	Analytics_Action_RemoveField = "Remove a column"
	Analytics_Action_IssueToken  = "Create a token"
	Analytics_Action_RevokeToken = "Revoke a token"
	Analytics_Action_RenameTable = "Rename a table"
	Analytics_Action_ExportCSV   = "Export CSV"
	Analytics_Action_CreateTable = "Create a table"
	Analytics_Action_DeleteTable = "Delete a table"
)

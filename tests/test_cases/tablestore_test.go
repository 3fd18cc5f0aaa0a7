package testcases

import (
	"testing"

	"github.com/apitable/apitable-go-sdk/constants"
)

func TestTablestoreTableWorkflow(t *testing.T) {
	runTableWorkflow(t, getClient(t, constants.Datasource_Type_TableStore))
}

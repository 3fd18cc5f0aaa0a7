package api

import (
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/utils"
)

// AccessToken grants read, and optionally write, access to a table's records.
type AccessToken struct {
	Token    string `json:"token"`
	Writable bool   `json:"writable"`
}

func NewAccessTokenFromRecord(r *Record) *AccessToken {
	return &AccessToken{
		Token:    r.Id,
		Writable: utils.ToBool(r.Data["writable"], false),
	}
}

func NewAccessTokenRecord(tableId string) *Record {
	return NewRecord(constants.Record_Type_AccessToken, "", map[string]interface{}{
		constants.Record_Key_Table: NewReference(constants.Record_Type_Table, tableId),
		"writable":                 false,
	})
}

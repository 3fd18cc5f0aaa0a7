package api

import (
	"context"
	"fmt"

	"github.com/apitable/apitable-go-sdk/constants"
)

type AccessTokenApiService service

type ListAccessTokensResponse struct {
	Tokens []*AccessToken
}

/*
AccessTokenApiService List the access tokens of a table, newest first
  - @param tableId

@return ListAccessTokensResponse
*/
func (a *AccessTokenApiService) ListAccessTokens(ctx context.Context, tableId string) (ListAccessTokensResponse, error) {
	var (
		localVarReturnValue ListAccessTokensResponse
	)

	query := NewQuery(constants.Record_Type_AccessToken).
		EqualTo(constants.Record_Key_Table, tableId).
		AddDescending(constants.Record_Key_CreatedAt)
	result, err := a.client.db.Query(ctx, query)
	if err != nil {
		return localVarReturnValue, err
	}

	tokens := make([]*AccessToken, 0, len(result.Records))
	for _, r := range result.Records {
		tokens = append(tokens, NewAccessTokenFromRecord(r))
	}
	localVarReturnValue.Tokens = tokens

	return localVarReturnValue, nil
}

// IssueToken creates a read-only token for the table.
func (a *AccessTokenApiService) IssueToken(ctx context.Context, tableId string) (*AccessToken, error) {
	saved, err := a.client.db.Save(ctx, []*Record{NewAccessTokenRecord(tableId)})
	if err != nil {
		return nil, err
	}
	if len(saved) != 1 {
		return nil, fmt.Errorf("issue token: store returned %d records", len(saved))
	}
	return NewAccessTokenFromRecord(saved[0]), nil
}

func (a *AccessTokenApiService) RevokeToken(ctx context.Context, token string) error {
	return a.client.db.Delete(ctx, []Reference{NewReference(constants.Record_Type_AccessToken, token)})
}

// SetTokenWritability updates an existing token, ErrNotFound when it was revoked.
func (a *AccessTokenApiService) SetTokenWritability(ctx context.Context, token string, writable bool) (*AccessToken, error) {
	if _, err := a.client.getRecord(ctx, constants.Record_Type_AccessToken, token); err != nil {
		return nil, err
	}

	record := NewRecord(constants.Record_Type_AccessToken, token, map[string]interface{}{
		"writable": writable,
	})
	saved, err := a.client.db.Save(ctx, []*Record{record})
	if err != nil {
		return nil, err
	}
	if len(saved) != 1 {
		return nil, fmt.Errorf("set token writability: store returned %d records", len(saved))
	}
	return NewAccessTokenFromRecord(saved[0]), nil
}

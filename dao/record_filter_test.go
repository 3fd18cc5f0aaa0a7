package dao

import (
	"testing"

	"fortio.org/assert"
	"github.com/apitable/apitable-go-sdk/api"
)

func TestExtractVariables(t *testing.T) {
	testcases := []struct {
		code   string
		expect []string
	}{
		{
			code:   "age > 6",
			expect: []string{"age"},
		},
		{
			code:   "6 < age ",
			expect: []string{"age"},
		},
		{
			code:   "city == 'Taipei'",
			expect: []string{"city"},
		},
		{
			code:   "age > 6 && city == 'Taipei' || status != 'done'",
			expect: []string{"age", "city", "status"},
		},
		{
			code:   "(age < 30 && (3 <= level < 5) && city=='Taipei')",
			expect: []string{"age", "city", "level"},
		},
		{
			code:   "len(name) > 3 && tags[0] == 'vip'",
			expect: []string{"name", "tags"},
		},
		{
			code:   "paid ? total > 100 : total > 50",
			expect: []string{"paid", "total"},
		},
	}
	for _, tcase := range testcases {
		params, err := ExtractVariables(tcase.code)
		assert.NoError(t, err)
		assert.Equal(t, params, tcase.expect)
	}
}

func TestExtractVariablesParseError(t *testing.T) {
	_, err := ExtractVariables("age >")
	assert.Equal(t, err != nil, true)
}

func TestCompileFilter(t *testing.T) {
	_, err := CompileFilter("'x' + 'y'")
	assert.Equal(t, err != nil, true)

	program, err := CompileFilter("age >= 30 && city == 'Taipei'")
	assert.NoError(t, err)

	r := api.NewTableRecord("t1", map[string]interface{}{"age": float64(31), "city": "Taipei"})
	r.Id = "r1"
	matched, err := evalFilter(program, r)
	assert.NoError(t, err)
	assert.Equal(t, matched, true)

	r = api.NewTableRecord("t1", map[string]interface{}{"age": float64(29), "city": "Taipei"})
	matched, err = evalFilter(program, r)
	assert.NoError(t, err)
	assert.Equal(t, matched, false)

	// a missing field is nil, not an error
	r = api.NewTableRecord("t1", map[string]interface{}{"city": "Taipei"})
	program, err = CompileFilter("age == nil")
	assert.NoError(t, err)
	matched, err = evalFilter(program, r)
	assert.NoError(t, err)
	assert.Equal(t, matched, true)

	program, err = CompileFilter("_id == 'r9'")
	assert.NoError(t, err)
	r.Id = "r9"
	matched, err = evalFilter(program, r)
	assert.NoError(t, err)
	assert.Equal(t, matched, true)
}

package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/apitable/apitable-go-sdk/utils"
)

const timeFormat = "2006-01-02 15:04:05.000 -0700 MST"

func formatTimeIfPossible(v interface{}) (string, bool) {
	if t, ok := v.(time.Time); ok {
		return t.Format(timeFormat), true
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

func deepEqual(a, b interface{}) bool {
	if aStr, aOk := formatTimeIfPossible(a); aOk {
		if bStr, bOk := formatTimeIfPossible(b); bOk {
			return aStr == bStr
		}
	}

	strA := fmt.Sprintf("%v", a)
	strB := fmt.Sprintf("%v", b)

	if strA == strB {
		return true
	}

	if reflect.TypeOf(a).Kind() != reflect.TypeOf(b).Kind() {
		return false
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)

	switch va.Kind() {
	case reflect.Array, reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !deepEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		for _, k := range va.MapKeys() {
			if !deepEqual(va.MapIndex(k).Interface(), vb.MapIndex(k).Interface()) {
				return false
			}
		}
		return true
	}

	return strA == strB
}

// CheckResults compares exported rows with the expected rows, matched on
// the idName column.
func CheckResults(idName string, results []map[string]interface{}, expectedResults []map[string]interface{}) (bool, error) {
	if len(results) != len(expectedResults) {
		return false, fmt.Errorf("results length(%d) not equal to expected results length(%d)", len(results), len(expectedResults))
	}
	expectedResultsIdxMap := make(map[string]int)
	for i, expectedResult := range expectedResults {
		if id, ok := expectedResult[idName]; ok {
			expectedResultsIdxMap[fmt.Sprintf("%v", id)] = i
		} else {
			return false, errors.New("id value not found in expected result")
		}
	}

	for i, result := range results {
		id, ok := result[idName]
		if !ok {
			return false, errors.New("id value not found in result")
		}
		expectedResultIdx, ok := expectedResultsIdxMap[fmt.Sprintf("%v", id)]
		if !ok {
			return false, fmt.Errorf("id %v not found in expected results", id)
		}
		expectedResult := expectedResults[expectedResultIdx]
		for key, value := range result {
			expectedVal, expectedOK := expectedResult[key]
			if !expectedOK {
				return false, fmt.Errorf("field %v: result value:%v expected value is nil (row %s=%v, line %d)", key, value, idName, id, i)
			}
			if !deepEqual(value, expectedVal) {
				return false, fmt.Errorf("field %v: result value:%v not equal to expected value:%v (row %s=%v, line %d)", key, value, expectedVal, idName, id, i)
			}
		}
	}

	return true, nil
}

// CheckResultsWithFile compares exported rows with a CSV file whose first
// line names the columns. Empty cells are treated as missing values.
func CheckResultsWithFile(idName string, results []map[string]interface{}, filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return false, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(records) < 2 {
		return false, fmt.Errorf("CSV file does not contain any data")
	}

	headers := records[0]
	var expectedResults []map[string]interface{}
	for _, record := range records[1:] {
		result := make(map[string]interface{})
		for i, value := range record {
			if value == "" {
				continue
			}
			result[headers[i]] = value
		}
		expectedResults = append(expectedResults, result)
	}

	// csv cells are strings
	stringResults := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		row := make(map[string]interface{}, len(result))
		for k, v := range result {
			if v == nil {
				continue
			}
			row[k] = utils.ToString(v, "")
		}
		stringResults = append(stringResults, row)
	}

	return CheckResults(idName, stringResults, expectedResults)
}

/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */


// Package utils converts generic query rows into typed values.
package utils

import (
	"strconv"
	"time"
)

// String returns the string column or "".
func String(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// NullableString returns nil for NULL or missing columns.
func NullableString(row map[string]interface{}, key string) *string {
	switch v := row[key].(type) {
	case string:
		return &v
	case []byte:
		s := string(v)
		return &s
	}
	return nil
}

// Int64 reads integer columns, including counts returned as text.
func Int64(row map[string]interface{}, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// NullableFloat reads DECIMAL or FLOAT columns; MySQL returns DECIMAL as text.
func NullableFloat(row map[string]interface{}, key string) *float64 {
	switch v := row[key].(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// Bool reads TINYINT(1) columns.
func Bool(row map[string]interface{}, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return v == "1" || v == "true"
	}
	return false
}

// Time reads DATETIME columns scanned with parseTime=true.
func Time(row map[string]interface{}, key string) time.Time {
	if t := NullableTime(row, key); t != nil {
		return *t
	}
	return time.Time{}
}

// NullableTime returns nil for NULL DATETIME columns.
func NullableTime(row map[string]interface{}, key string) *time.Time {
	switch v := row[key].(type) {
	case time.Time:
		t := v.UTC()
		return &t
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
	}
	return nil
}

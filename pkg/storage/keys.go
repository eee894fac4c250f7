package storage

import "fmt"

func identityKey(rowKey, day string) string {
	if rowKey == "" || day == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s", rowKey, day)
}

//go:build !linux

package gpt

import "os"

func logicalBlockSize(*os.File) int64 {
	return fallbackLBSize
}

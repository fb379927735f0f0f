package common

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

func snowflakeNode() *snowflake.Node {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			zap.S().Fatalf("snowflake node init failed: %v", err)
		}
	})
	return node
}

// UUIDint64 returns a time ordered int64 id
func UUIDint64() int64 {
	return snowflakeNode().Generate().Int64()
}

// UUID returns a random uuid string
func UUID() string {
	return uuid.NewString()
}

// IsEmptyOrNA reports whether a string holds no usable value
func IsEmptyOrNA(val string) bool {
	return val == "" || val == "N/A"
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

// StringValue dereferences p, returning "" for nil
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

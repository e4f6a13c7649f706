package uid

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/log"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init sets up the snowflake node for this process. Only the first call has any effect.
func Init(machineID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(machineID)
	})
	return initErr
}

// Generate returns a new time-ordered ID. Calling it before Init is a programming error.
func Generate() int64 {
	if node == nil {
		log.Fatalf("uid package not initialized")
	}
	return node.Generate().Int64()
}

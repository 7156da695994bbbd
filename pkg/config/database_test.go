package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelloReplySupportsTransactions(t *testing.T) {
	assert.False(t, helloReply{}.supportsTransactions(), "standalone")
	assert.True(t, helloReply{SetName: "rs0"}.supportsTransactions(), "replica set member")
	assert.True(t, helloReply{Msg: "isdbgrid"}.supportsTransactions(), "mongos")
}

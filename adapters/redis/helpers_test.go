package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// setupMock 使用 redismock 模擬指令結果，適合注入錯誤
func setupMock(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

// setupMiniredis 啟動記憶體內的 redis，cleanup 會先關閉 client 再關閉 server
func setupMiniredis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return client, server, func() {
		client.Close()
		server.Close()
	}
}

type roomMessage struct {
	Channel string
	Event   string
	Payload []byte
}

package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dialAndReadLine(t *testing.T, addr string) (net.Conn, string) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return conn, line
}

func TestAcceptorAdmitsUpToMax(t *testing.T) {
	acc := NewAcceptor(stubSearcher{}, stubDocs{}, 2, 2)
	require.NoError(t, acc.Listen("127.0.0.1:0"))
	defer acc.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go acc.Serve(ctx)

	addr := acc.listener.Addr().String()

	c1, line1 := dialAndReadLine(t, addr)
	defer c1.Close()
	assert.Equal(t, "Welcome to Search Server!\n", line1)

	c2, line2 := dialAndReadLine(t, addr)
	defer c2.Close()
	assert.Equal(t, "Welcome to Search Server!\n", line2)

	// third connection should be told the server is busy
	c3, line3 := dialAndReadLine(t, addr)
	defer c3.Close()
	assert.Equal(t, "SERVER_BUSY\n", line3)
}

func TestAcceptorPromotesWaitingClientOnRelease(t *testing.T) {
	acc := NewAcceptor(stubSearcher{}, stubDocs{}, 1, 1)
	require.NoError(t, acc.Listen("127.0.0.1:0"))
	defer acc.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go acc.Serve(ctx)

	addr := acc.listener.Addr().String()

	c1, _ := dialAndReadLine(t, addr)
	c2, line2 := dialAndReadLine(t, addr)
	defer c2.Close()
	assert.Equal(t, "SERVER_BUSY\n", line2)

	c1.Close() // release the only slot

	reader := bufio.NewReader(c2)
	deadlineConn := c2.(*net.TCPConn)
	_ = deadlineConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	welcome, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Search Server!\n", welcome)
}

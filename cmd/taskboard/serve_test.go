package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestListenBindsBothAddresses(t *testing.T) {
	restLis, grpcLis, err := listen("127.0.0.1:0", "127.0.0.1:0")
	require.NoError(t, err)
	defer restLis.Close()
	defer grpcLis.Close()

	assert.NotEqual(t, restLis.Addr().String(), grpcLis.Addr().String())
}

func TestListenReleasesRESTWhenGRPCPortIsTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	restAddr := freeAddr(t)
	_, _, err = listen(restAddr, taken.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gRPC")

	again, err := net.Listen("tcp", restAddr)
	require.NoError(t, err, "REST address should have been released")
	again.Close()
}

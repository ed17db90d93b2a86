package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmoczala/siriusrtos/kernel"
	"github.com/mmoczala/siriusrtos/platform/soft"
)

func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(soft.New())
	require.NoError(t, err)
	return k
}

func TestPtrQueuePostPendRoundTrip(t *testing.T) {
	k := newTestKernel(t)
	qh, ek := CreatePtrQueue(k, "q", 2)
	require.Equal(t, kernel.NoError, ek)

	result := make(chan any, 1)
	h, ek := k.CreateTask(kernel.TaskConfig{
		Proc: func(ctx *kernel.TaskContext, arg any) int {
			require.Equal(t, kernel.NoError, Post(ctx, qh, "payload", false, 0, false))
			v, ek := Pend(ctx, qh, false, 0, false)
			require.Equal(t, kernel.NoError, ek)
			result <- v
			return 0
		},
		Priority: 10,
	})
	require.Equal(t, kernel.NoError, ek)

	go k.Start()
	_, ek = k.Join(h)
	k.Stop()
	require.Equal(t, kernel.NoError, ek)
	assert.Equal(t, "payload", <-result)
}

func TestCreateBulkTransferObjects(t *testing.T) {
	k := newTestKernel(t)

	_, ek := CreateByteStream(k, "bs", 16)
	assert.Equal(t, kernel.NoError, ek)

	_, ek = CreateMsgQueue(k, "mq", 4, 8)
	assert.Equal(t, kernel.NoError, ek)

	_, ek = CreateMailbox(k, "mb", 4)
	assert.Equal(t, kernel.NoError, ek)

	_, ek = CreateSharedMem(k, "sm", 64, true)
	assert.Equal(t, kernel.NoError, ek)
}

// Command demo is the Go rendering of the original Main.c: TaskCount
// worker tasks each burn simulated CPU for a fixed interval, report
// progress, then sleep for a duration staggered by their task index.
package main

import (
	"context"
	"time"

	"github.com/mmoczala/siriusrtos/internal/klog"
	"github.com/mmoczala/siriusrtos/kernel"
	"github.com/mmoczala/siriusrtos/platform/soft"
)

const (
	taskCount      = 8
	jobIterations  = 10
	jobBusyUnits   = 75 // simulated JOB_ITER_TIME_MS, in Busy() units rather than wall time
)

func worker(ctx *kernel.TaskContext, arg any) int {
	id := arg.(int)
	log := klog.Global()

	for i := 0; i < jobIterations; i++ {
		ctx.Busy(jobBusyUnits)

		log.Info().Int("task", id).Int("iteration", i).Log("work burst complete")

		sleepTicks := uint32(1000 - jobBusyUnits*10 + 1000*id)
		if ek := ctx.Sleep(sleepTicks); ek != kernel.NoError {
			log.Warning().Int("task", id).Str("error", ek.String()).Log("sleep failed")
		}
	}
	return 0
}

func main() {
	plat := soft.New()
	k, err := kernel.New(plat, kernel.WithMaxTasks(taskCount+1))
	if err != nil {
		klog.Global().Err(err).Log("kernel init failed")
		return
	}
	defer k.Deinit()

	for i := 0; i < taskCount; i++ {
		if _, ek := k.CreateTask(kernel.TaskConfig{
			Proc:     worker,
			Arg:      i,
			Priority: uint8(100 + i),
			Quantum:  4,
		}); ek != kernel.NoError {
			klog.Global().Str("error", ek.String()).Log("create task failed")
			return
		}
	}

	ticker := soft.NewTicker(time.Millisecond, k.OnTick)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go ticker.Run(ctx)

	go k.Start()
	<-ctx.Done()
	k.Stop()
	ticker.Stop()
}

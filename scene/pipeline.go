package scene

import "sync"

// task runs fn over data split into workersCount contiguous chunks
func task[T any](workersCount int, data []T, fn func(data T)) {
	if len(data) == 0 {
		return
	}
	workersCount = max(1, min(workersCount, len(data)))

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}

package systems

// randInt 返回 [min, max] 闭区间内的均匀随机整数
func randInt(rng RandomSource, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// randFloat 返回 [min, max) 内的均匀随机数
func randFloat(rng RandomSource, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// pick 从切片中均匀随机取一个元素，空切片返回零值
func pick[T any](rng RandomSource, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rng.Intn(len(items))]
}

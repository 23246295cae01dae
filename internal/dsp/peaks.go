package dsp

import "sort"

// FindPeaks 带显著度与最小间距约束的峰值检测
//
// 行为与 scipy.signal.find_peaks(distance=..., prominence=...) 对齐：
// 先找局部极大（平台取中点），再按显著度筛选，
// 最后按高度优先保留、剔除间距不足的相邻峰。
func FindPeaks(x []float64, minDistance int, minProminence float64) []int {
	maxima := localMaxima(x)
	if len(maxima) == 0 {
		return nil
	}

	var peaks []int
	for _, p := range maxima {
		if prominence(x, p) >= minProminence {
			peaks = append(peaks, p)
		}
	}
	if len(peaks) == 0 {
		return nil
	}

	if minDistance > 1 {
		peaks = selectByDistance(x, peaks, minDistance)
	}
	return peaks
}

// localMaxima 局部极大值（平台取中点）
func localMaxima(x []float64) []int {
	var peaks []int
	iMax := len(x) - 1
	i := 1
	for i < iMax {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < iMax && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}
	return peaks
}

// prominence 峰值显著度：向两侧走到更高点或边界，取途中最小值的较大者
func prominence(x []float64, p int) float64 {
	leftMin := x[p]
	for i := p - 1; i >= 0 && x[i] <= x[p]; i-- {
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}

	rightMin := x[p]
	for i := p + 1; i < len(x) && x[i] <= x[p]; i++ {
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return x[p] - base
}

// selectByDistance 按高度从高到低保留峰，剔除间距不足的邻峰
func selectByDistance(x []float64, peaks []int, minDistance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return x[peaks[order[a]]] > x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for _, j := range order {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < minDistance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < minDistance; k++ {
			keep[k] = false
		}
	}

	var out []int
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

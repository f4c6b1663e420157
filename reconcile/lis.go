package reconcile

import (
	"cmp"
	"slices"
)

// LongestIncreasingSubsequence returns the ascending indices of one longest
// strictly increasing subsequence of arr. Zero entries mark items with no
// previous position and never take part. Runs in O(n log n).
func LongestIncreasingSubsequence(arr []int) []int {
	prev := make([]int, len(arr))
	result := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == 0 {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				prev[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}

		pos, found := slices.BinarySearchFunc(result, v, func(idx, target int) int {
			return cmp.Compare(arr[idx], target)
		})
		if found {
			continue
		}
		if pos > 0 {
			prev[i] = result[pos-1]
		}
		result[pos] = i
	}

	if len(result) == 0 {
		return result
	}
	last := result[len(result)-1]
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = last
		last = prev[last]
	}
	return result
}

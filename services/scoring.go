// file: services/scoring.go
package services

// HintPenalty 每使用一个提示扣除的分数
const HintPenalty = 10

// FinalPoints 计算首次答对的得分，最低为 0
func FinalPoints(scoreBase, hintsUsed int) int {
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	points := scoreBase - PenaltyFor(hintsUsed)
	if points < 0 {
		return 0
	}
	return points
}

func PenaltyFor(hintsUsed int) int {
	return hintsUsed * HintPenalty
}

package service

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/grades/student_grades/dto"
	helper "schoolhub_backend/internals/helpers"
)

// GradeInput: satu nilai tervalidasi
type GradeInput struct {
	StudentID uuid.UUID
	SubjectID uuid.UUID
	Value     float64
	Weight    int
}

type SubjectAverage struct {
	StudentID  uuid.UUID
	SubjectID  uuid.UUID
	Average    float64
	GradeCount int
	Rank       int
}

type OverallAverage struct {
	StudentID  uuid.UUID
	Average    float64
	GradeCount int
	Rank       int
}

type pair struct{ student, subject uuid.UUID }

// SubjectAverages: Σ(nilai·bobot)/Σbobot per siswa+mapel, dengan peringkat per mapel.
func SubjectAverages(grades []GradeInput) []SubjectAverage {
	type acc struct {
		sum    float64
		weight int
		count  int
	}
	byPair := map[pair]*acc{}
	order := []pair{}
	for _, g := range grades {
		w := g.Weight
		if w <= 0 {
			w = 1
		}
		k := pair{g.StudentID, g.SubjectID}
		a, ok := byPair[k]
		if !ok {
			a = &acc{}
			byPair[k] = a
			order = append(order, k)
		}
		a.sum += g.Value * float64(w)
		a.weight += w
		a.count++
	}

	out := make([]SubjectAverage, 0, len(order))
	for _, k := range order {
		a := byPair[k]
		out = append(out, SubjectAverage{
			StudentID:  k.student,
			SubjectID:  k.subject,
			Average:    helper.Round2(a.sum / float64(a.weight)),
			GradeCount: a.count,
		})
	}

	bySubject := map[uuid.UUID][]int{}
	for i, s := range out {
		bySubject[s.SubjectID] = append(bySubject[s.SubjectID], i)
	}
	for _, idx := range bySubject {
		vals := make([]float64, len(idx))
		for j, i := range idx {
			vals[j] = out[i].Average
		}
		ranks := CompetitionRank(vals)
		for j, i := range idx {
			out[i].Rank = ranks[j]
		}
	}
	return out
}

// OverallAverages: Σ(moy_mapel·koef)/Σkoef atas mapel yang punya nilai.
// Koefisien yang tidak ada di map dianggap 1.
func OverallAverages(subjects []SubjectAverage, coef map[uuid.UUID]int) []OverallAverage {
	type acc struct {
		sum   float64
		coef  int
		count int
	}
	byStudent := map[uuid.UUID]*acc{}
	order := []uuid.UUID{}
	for _, s := range subjects {
		c := coef[s.SubjectID]
		if c <= 0 {
			c = 1
		}
		a, ok := byStudent[s.StudentID]
		if !ok {
			a = &acc{}
			byStudent[s.StudentID] = a
			order = append(order, s.StudentID)
		}
		a.sum += s.Average * float64(c)
		a.coef += c
		a.count += s.GradeCount
	}

	out := make([]OverallAverage, 0, len(order))
	vals := make([]float64, 0, len(order))
	for _, id := range order {
		a := byStudent[id]
		avg := helper.Round2(a.sum / float64(a.coef))
		out = append(out, OverallAverage{StudentID: id, Average: avg, GradeCount: a.count})
		vals = append(vals, avg)
	}
	for i, r := range CompetitionRank(vals) {
		out[i].Rank = r
	}
	return out
}

// CompetitionRank: urut menurun, nilai sama berbagi peringkat dan peringkat berikutnya dilompati (1,1,3).
func CompetitionRank(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })

	ranks := make([]int, len(values))
	for pos, i := range idx {
		if pos > 0 && sameScore(values[i], values[idx[pos-1]]) {
			ranks[i] = ranks[idx[pos-1]]
			continue
		}
		ranks[i] = pos + 1
	}
	return ranks
}

func sameScore(a, b float64) bool { return math.Abs(a-b) < 0.005 }

const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandPass      = "pass"
	BandFail      = "fail"
)

// ColorBand: ≥16 excellent, ≥14 good, ≥10 pass, selain itu fail
func ColorBand(avg float64) string {
	switch {
	case avg >= 16:
		return BandExcellent
	case avg >= 14:
		return BandGood
	case avg >= 10:
		return BandPass
	default:
		return BandFail
	}
}

// Stats: statistik nilai kelas (stddev populasi)
func Stats(values []float64) dto.GradeStats {
	st := dto.GradeStats{Count: len(values)}
	if len(values) == 0 {
		return st
	}
	st.Min, st.Max = values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		if v < 10 {
			st.BelowTen++
		}
		if v >= 15 {
			st.AboveFifteen++
		}
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	st.Average = helper.Round2(mean)
	st.StdDev = helper.Round2(math.Sqrt(sq / float64(len(values))))
	return st
}

package app

import (
	"sort"

	"github.com/LachsProducktions/mediascan/models"
)

// groupDuplicates folds fingerprinted records into duplicate groups. Keys are
// mutually exclusive partitions, so no file can land in two groups. The
// output is fully deterministic for a given record set: members are ordered
// by path and groups by wasted bytes descending, key as tiebreak.
func groupDuplicates(byKey map[string][]models.FileRecord) []models.DuplicateGroup {
	var groups []models.DuplicateGroup

	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			return members[i].Path < members[j].Path
		})

		roots := make(map[string]struct{})
		for _, m := range members {
			roots[m.Root] = struct{}{}
		}
		rootList := make([]string, 0, len(roots))
		for r := range roots {
			rootList = append(rootList, r)
		}
		sort.Strings(rootList)

		groups = append(groups, models.DuplicateGroup{
			Key:     key,
			Size:    members[0].Size,
			Members: members,
			Roots:   rootList,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		wi, wj := groups[i].WastedBytes(), groups[j].WastedBytes()
		if wi != wj {
			return wi > wj
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// countCrossRoot returns how many groups span more than one root.
func countCrossRoot(groups []models.DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		if g.CrossRoot() {
			n++
		}
	}
	return n
}

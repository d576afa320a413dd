package types_test

import (
	"sort"
	"testing"

	types "github.com/okian/careerstandings/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryLess(t *testing.T) {
	Convey("Given season table entries", t, func() {
		entries := []types.Entry{
			{ParticipantID: "c", Points: 100, Events: 3},
			{ParticipantID: "a", Points: 120, Events: 4},
			{ParticipantID: "b", Points: 100, Events: 2},
			{ParticipantID: "d", Points: 100, Events: 2},
		}

		Convey("When sorting with Less", func() {
			sort.Slice(entries, func(i, j int) bool { return entries[i].Less(entries[j]) })

			Convey("Then points win, then fewer events, then id", func() {
				ids := make([]string, len(entries))
				for i, e := range entries {
					ids[i] = e.ParticipantID
				}
				So(ids, ShouldResemble, []string{"a", "b", "d", "c"})
			})
		})

		Convey("When comparing an entry with itself", func() {
			Convey("Then it is not less", func() {
				So(entries[0].Less(entries[0]), ShouldBeFalse)
			})
		})
	})
}

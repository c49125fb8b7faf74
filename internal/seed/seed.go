package seed

import "hash/fnv"

// Separator joins the parts of a composite seed key.
const Separator = "|"

// Derive maps an arbitrary string to a 32-bit seed using FNV-1a over its
// UTF-8 bytes. It is total: the empty string and very long keys are valid.
func Derive(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key)) // hash.Hash never returns an error
	return h.Sum32()
}

// Key builds the table-qualified key for one (student, homework set) pair.
//
// The table discriminator keeps selections for different tables independent:
// without it every table would be shuffled with the same decisions.
//
//	seed.Key("students", "alice@example.com", "hw3") // "students|alice@example.com|hw3"
func Key(table, studentID, homeworkSetID string) string {
	return table + Separator + studentID + Separator + homeworkSetID
}

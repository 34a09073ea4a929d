package sqlxrepos_test

import "strconv"

func idStr(id int64) string { return strconv.FormatInt(id, 10) }

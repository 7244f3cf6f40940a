package index

var (
	bMeta    = []byte("meta")     // slug -> post json
	bIdxDate = []byte("idx_date") // invTime + 0x00 + slug
	bIdxTag  = []byte("idx_tag")  // tag -> sub-bucket of date keys
	bIdxCat  = []byte("idx_cat")  // category -> sub-bucket of date keys
	bState   = []byte("state")    // build bookkeeping

	kContentHash = []byte("content_hash")
)

var allBuckets = [][]byte{bMeta, bIdxDate, bIdxTag, bIdxCat, bState}

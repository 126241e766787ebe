package book

// Genre 图书分类
// 固定枚举，创建/更新时校验，非法值直接拒绝（不做静默兜底）。
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreMystery        Genre = "Mystery"
	GenreThriller       Genre = "Thriller"
	GenreRomance        Genre = "Romance"
	GenreScienceFiction Genre = "Science Fiction"
	GenreFantasy        Genre = "Fantasy"
	GenreHorror         Genre = "Horror"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreSelfHelp       Genre = "Self-Help"
	GenreBusiness       Genre = "Business"
	GenrePoetry         Genre = "Poetry"
	GenreChildren       Genre = "Children"
	GenreTravel         Genre = "Travel"
	GenreOther          Genre = "Other"
)

// allGenres 全部16个分类，顺序即对外展示顺序
var allGenres = []Genre{
	GenreFiction, GenreNonFiction, GenreMystery, GenreThriller,
	GenreRomance, GenreScienceFiction, GenreFantasy, GenreHorror,
	GenreBiography, GenreHistory, GenreSelfHelp, GenreBusiness,
	GenrePoetry, GenreChildren, GenreTravel, GenreOther,
}

// Genres 返回全部分类列表（副本）
func Genres() []Genre {
	out := make([]Genre, len(allGenres))
	copy(out, allGenres)
	return out
}

// IsValidGenre 校验分类是否在枚举中
func IsValidGenre(g Genre) bool {
	for _, v := range allGenres {
		if v == g {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"math/rand"
	"time"

	mongodoc "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/infrastructure/mongo"
)

type categorySeed struct {
	code  string
	name  string
	menus []menuSeed
}

type menuSeed struct {
	name     string
	category string
	price    int
	minutes  int
}

var categorySeeds = []categorySeed{
	{code: "1", name: "헤어", menus: []menuSeed{
		{"커트", "컷", 20000, 40},
		{"레이어드 커트", "컷", 25000, 50},
		{"디지털 펌", "펌", 90000, 150},
		{"뿌리 염색", "염색", 50000, 90},
	}},
	{code: "2", name: "네일", menus: []menuSeed{
		{"젤 네일", "핸드", 45000, 70},
		{"네일 케어", "핸드", 20000, 30},
		{"페디 젤", "풋", 55000, 80},
	}},
	{code: "3", name: "피부", menus: []menuSeed{
		{"수분 관리", "페이셜", 60000, 60},
		{"여드름 관리", "페이셜", 70000, 60},
	}},
	{code: "4", name: "바버", menus: []menuSeed{
		{"커트", "컷", 18000, 30},
		{"면도", "쉐이빙", 15000, 20},
		{"커트 & 면도", "컷", 30000, 50},
	}},
}

var districts = []struct {
	name string
	lat  float64
	lng  float64
}{
	{"서울 중구", 37.5638, 126.9975},
	{"서울 강남구", 37.4979, 127.0276},
	{"서울 마포구", 37.5563, 126.9236},
	{"서울 종로구", 37.5704, 126.9921},
	{"서울 성동구", 37.5446, 127.0560},
	{"부산 해운대구", 35.1631, 129.1635},
}

var shopNames = []string{"살롱 드 봄", "모노 헤어", "온기", "브릭", "라온", "하루", "소소", "결", "담다", "플로우"}

func generateCategories() []mongodoc.CategoryDocument {
	docs := make([]mongodoc.CategoryDocument, 0, len(categorySeeds))
	for i, seed := range categorySeeds {
		docs = append(docs, mongodoc.CategoryDocument{Code: seed.code, Name: seed.name, SortOrder: i + 1})
	}
	return docs
}

func generateShops(rng *rand.Rand, count int, now time.Time) []mongodoc.ShopDocument {
	docs := make([]mongodoc.ShopDocument, 0, count)
	for i := 0; i < count; i++ {
		category := categorySeeds[rng.Intn(len(categorySeeds))]
		district := districts[rng.Intn(len(districts))]
		createdAt := now.Add(-time.Duration(rng.Intn(24*180)) * time.Hour)
		updatedAt := createdAt

		menus := make([]mongodoc.MenuDocument, 0, len(category.menus))
		for _, m := range pickMenus(rng, category.menus) {
			menus = append(menus, mongodoc.MenuDocument{
				Name:             m.name,
				Category:         m.category,
				Price:            m.price,
				DurationMinutes:  m.minutes,
				ReservationCount: rng.Intn(30),
			})
		}

		docs = append(docs, mongodoc.ShopDocument{
			Code:          fmt.Sprintf("SH%04d", i+1),
			Name:          fmt.Sprintf("%s %s", shopNames[rng.Intn(len(shopNames))], category.name),
			CategoryCode:  category.code,
			CategoryName:  category.name,
			Location:      district.name,
			Phone:         fmt.Sprintf("02-%03d-%04d", 100+rng.Intn(900), rng.Intn(10000)),
			Description:   fmt.Sprintf("%s에 위치한 %s 전문 매장입니다.", district.name, category.name),
			BusinessHours: randomBusinessHours(rng),
			Latitude:      jitter(rng, district.lat),
			Longitude:     jitter(rng, district.lng),
			Menus:         menus,
			CreatedAt:     &createdAt,
			UpdatedAt:     &updatedAt,
		})
	}
	return docs
}

// pickMenus keeps at least one menu so every seeded shop is bookable.
func pickMenus(rng *rand.Rand, menus []menuSeed) []menuSeed {
	count := 1 + rng.Intn(len(menus))
	picked := make([]menuSeed, 0, count)
	for _, idx := range rng.Perm(len(menus))[:count] {
		picked = append(picked, menus[idx])
	}
	return picked
}

func jitter(rng *rand.Rand, v float64) float64 {
	return v + (rng.Float64()-0.5)*0.02
}

func randomBusinessHours(rng *rand.Rand) string {
	open := 9 + rng.Intn(3)
	closeHour := 19 + rng.Intn(4)
	return fmt.Sprintf("%02d:00-%02d:00", open, closeHour)
}

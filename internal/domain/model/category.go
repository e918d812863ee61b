package model

// 商品カテゴリ。このサービスからは読むだけ。
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null;index" json:"name"`
}

// 取り込み商品のデフォルトカテゴリ名
const DefaultCategoryName = "Grocery & Essentials"

//go:build mobile

// embed.go - 移动端资源嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// //go:embed 只能嵌入本包目录下的文件，mobile/data 是根目录 data/ 的副本，
// 修改配置后需同步：
//
//	cp data/game.yaml data/sounds.yaml mobile/data/
//	go build -tags mobile ./mobile
package mobile

import "embed"

//go:embed data/game.yaml data/sounds.yaml
var dataFS embed.FS

// 初始化超级管理员
//
// 只有超级管理员可以创建管理员账号，首次部署时用此脚本创建第一个账号。
// 已存在超级管理员时不做任何修改。
//
// 用法: go run scripts/create_superadmin.go -email root@example.com -password '...'

package main

import (
	"academy_backend/internal/config"
	"academy_backend/internal/repository"
	"academy_backend/internal/service"
	"academy_backend/pkg/database"
	"academy_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
)

func main() {
	email := flag.String("email", os.Getenv("ACADEMY_ADMIN_EMAIL"), "超级管理员邮箱")
	password := flag.String("password", os.Getenv("ACADEMY_ADMIN_PASSWORD"), "初始密码（至少 8 位）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	users := service.NewUserService(repository.NewStore(db), service.NewMailer(&cfg.Mail), cfg.Mail.AppName)
	user, created, err := users.EnsureSuperAdmin(context.Background(), *email, *password)
	if err != nil {
		log.Fatalf("创建超级管理员失败: %v", err)
	}
	if !created {
		log.Printf("超级管理员已存在: %s", user.Email)
		return
	}
	log.Printf("已创建超级管理员: %s", user.Email)
}

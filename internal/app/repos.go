package app

import (
	"gorm.io/gorm"

	"github.com/courseagent/backend/internal/data/repos"
	"github.com/courseagent/backend/internal/platform/logger"
)

type Repos struct {
	Course repos.CourseRepo
	Lesson repos.LessonRepo
	Chunk  repos.ChunkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course: repos.NewCourseRepo(db, log),
		Lesson: repos.NewLessonRepo(db, log),
		Chunk:  repos.NewChunkRepo(db, log),
	}
}

package tasks

import (
	"github.com/sirupsen/logrus"
)

// Manager handles the execution of background tasks
type Manager struct {
	log   *logrus.Logger
	tasks []Task
}

// Task represents a background task that runs until stopped
type Task interface {
	Start()
	Stop()
}

// NewManager creates a new task manager
func NewManager(log *logrus.Logger) *Manager {
	return &Manager{
		log:   log,
		tasks: make([]Task, 0),
	}
}

// RegisterTask registers a task with the manager
func (m *Manager) RegisterTask(task Task) {
	m.tasks = append(m.tasks, task)
}

// StartAll starts all registered tasks
func (m *Manager) StartAll() {
	for _, task := range m.tasks {
		go task.Start()
	}
	m.log.Info("Started all background tasks")
}

// StopAll stops all running tasks
func (m *Manager) StopAll() {
	for _, task := range m.tasks {
		task.Stop()
	}
	m.log.Info("Stopped all background tasks")
}

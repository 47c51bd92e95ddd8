package controller

import (
	"log"
	"strconv"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/utils"
)

type ContactController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewContactController(db *gorm.DB, logger *log.Logger) *ContactController {
	return &ContactController{
		DB:     db,
		Logger: logger,
	}
}

// CreateContact creates an address-book entry
func (cc *ContactController) CreateContact(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		FirstName string `json:"first_name" validate:"omitempty,max=100"`
		LastName  string `json:"last_name" validate:"omitempty,max=100"`
		Email     string `json:"email"`
		Phone     string `json:"phone" validate:"omitempty,max=50"`
		Company   string `json:"company" validate:"omitempty,max=200"`
		Notes     string `json:"notes"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	contact := models.Contact{
		UserID:    user.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     strings.ToLower(input.Email),
		Phone:     input.Phone,
		Company:   input.Company,
		Notes:     input.Notes,
	}
	if err := cc.DB.Create(&contact).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create contact", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(contact))
}

// GetContacts returns paginated contacts, optionally filtered by search
func (cc *ContactController) GetContacts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit > 100 {
		limit = 100
	}

	query := cc.DB.Model(&models.Contact{}).Where("user_id = ?", user.ID)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	query.Count(&total)

	var contacts []models.Contact
	if err := query.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&contacts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contacts", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  contacts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetContact returns one contact with its leads
func (cc *ContactController) GetContact(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var contact models.Contact
	if err := cc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).
		Preload("Leads").
		First(&contact).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", nil)
	}

	return c.JSON(utils.SuccessResponse(contact))
}

// UpdateContact updates contact fields
func (cc *ContactController) UpdateContact(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var contact models.Contact
	if err := cc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&contact).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", nil)
	}

	var input struct {
		FirstName *string `json:"first_name" validate:"omitempty,max=100"`
		LastName  *string `json:"last_name" validate:"omitempty,max=100"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone" validate:"omitempty,max=50"`
		Company   *string `json:"company" validate:"omitempty,max=200"`
		Notes     *string `json:"notes"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.FirstName != nil {
		contact.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		contact.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email != "" {
			if err := checkmail.ValidateFormat(*input.Email); err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
			}
		}
		contact.Email = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		contact.Phone = *input.Phone
	}
	if input.Company != nil {
		contact.Company = *input.Company
	}
	if input.Notes != nil {
		contact.Notes = *input.Notes
	}

	if err := cc.DB.Save(&contact).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update contact", err)
	}

	return c.JSON(utils.SuccessResponse(contact))
}

// DeleteContact soft-deletes a contact; its leads keep their contact_id
func (cc *ContactController) DeleteContact(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	result := cc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).Delete(&models.Contact{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete contact", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Contact deleted"}))
}

// CreateTask creates a free-standing to-do item
func (cc *ContactController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title string `json:"title" validate:"required,max=200"`
		Notes string `json:"notes"`
		DueAt string `json:"due_at"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task := models.Task{
		UserID: user.ID,
		Title:  input.Title,
		Notes:  input.Notes,
	}
	if input.DueAt != "" {
		due, err := utils.ParseDate(input.DueAt, Location(user))
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due_at", err)
		}
		task.DueAt = &due
	}

	if err := cc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// GetTasks lists the user's tasks, pending first
func (cc *ContactController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := cc.DB.Where("user_id = ?", user.ID)
	if c.Query("done") == "" {
		query = query.Where("done = ?", false)
	} else {
		query = query.Where("done = ?", c.Query("done") == "true")
	}

	var tasks []models.Task
	if err := query.Order("due_at asc nulls last").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(utils.SuccessResponse(tasks))
}

// UpdateTask edits a task or toggles its done flag
func (cc *ContactController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := cc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var input struct {
		Title *string `json:"title" validate:"omitempty,max=200"`
		Notes *string `json:"notes"`
		DueAt *string `json:"due_at"`
		Done  *bool   `json:"done"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Notes != nil {
		task.Notes = *input.Notes
	}
	if input.DueAt != nil {
		if *input.DueAt == "" {
			task.DueAt = nil
		} else {
			due, err := utils.ParseDate(*input.DueAt, Location(user))
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due_at", err)
			}
			task.DueAt = &due
		}
	}
	if input.Done != nil {
		task.Done = *input.Done
	}

	if err := cc.DB.Save(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	return c.JSON(utils.SuccessResponse(task))
}

// DeleteTask removes a task
func (cc *ContactController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	result := cc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).Delete(&models.Task{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Task deleted"}))
}

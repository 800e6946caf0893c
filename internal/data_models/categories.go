package dto

type CreateCategoryRequest struct {
	UserID string `json:"user" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
	Color  string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=100"`
	Color *string `json:"color" validate:"omitnil,hexcolor,len=7"`
}

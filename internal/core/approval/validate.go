package approval

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// Pre-submission checks. Anything rejected here never reaches the
// network; the server remains the authority for everything that
// passes.

// ValidateCreateTDS checks the inputs of a TDS creation request.
func ValidateCreateTDS(name string, projectID int64, files []string) error {
	return criterio.ValidateStruct(
		criterio.Run("tds_name", name, notEmpty),
		criterio.Run("project_id", projectID, positiveID),
		validateFiles("files", files, 1),
	)
}

// ValidateFinalize checks that both documents required to finalize a
// purchase are present and readable.
func ValidateFinalize(orderConfirmation, lrCopy string) error {
	return criterio.ValidateStruct(
		criterio.Run("order_confirmation", orderConfirmation, fileExists),
		criterio.Run("lr_copy", lrCopy, fileExists),
	)
}

// ValidateRecheck enforces the recheck invariant: at least one
// document must survive the cycle, either kept from the existing set
// or newly uploaded.
func ValidateRecheck(kept []string, newFiles []string) error {
	if len(kept) == 0 && len(newFiles) == 0 {
		return criterio.NewFieldErrors("documents", fmt.Errorf("keep at least one existing file or upload new files"))
	}
	return validateFiles("files", newFiles, 0)
}

// ValidateResubmit enforces the contractor reupload invariant: the
// request must keep the existing set, remove specific indices, or
// carry a replacement file.
func ValidateResubmit(keepExisting bool, removeIndices []int, newFile string) error {
	if !keepExisting && len(removeIndices) == 0 && newFile == "" {
		return criterio.NewFieldErrors("documents", fmt.Errorf("select at least one document to keep or upload a new one"))
	}
	if newFile == "" {
		return nil
	}
	return criterio.Run("file", newFile, fileExists)
}

// ValidateProjectCreate checks project metadata and that every
// required role has at least one assignee. L2/L3 stay optional.
func ValidateProjectCreate(name, description string, assignments map[Role][]int64) error {
	errs := criterio.FieldErrorsBuilder{}

	if name == "" {
		errs = errs.Append("project_name", fmt.Errorf("project name is required"))
	}
	if description == "" {
		errs = errs.Append("project_description", fmt.Errorf("project description is required"))
	}

	for _, role := range RequiredProjectRoles {
		if len(assignments[role]) == 0 {
			errs = errs.Append("role_assignments", fmt.Errorf("select at least one %s", role))
		}
	}

	return errs.ToError()
}

func validateFiles(field string, files []string, minimum int) error {
	if len(files) < minimum {
		return criterio.NewFieldErrors(field, fmt.Errorf("at least %d document(s) required", minimum))
	}

	var errs criterio.FieldErrorsBuilder
	for i, f := range files {
		if err := fileExists(f); err != nil {
			errs = errs.Append(fmt.Sprintf("%s[%d]", field, i), err)
		}
	}
	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func positiveID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("must be a valid identifier")
	}
	return nil
}

func fileExists(path string) error {
	if path == "" {
		return fmt.Errorf("file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

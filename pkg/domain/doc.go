/*
Package domain contains the core domain models and business logic for the Totem quiz.

It defines the fixed-shape quiz data (Questions, Options, Categories), the per-user
Session record and the Category resolver. This package is kept pure and free of
external dependencies like I/O or persistence.

# Key Entities

  - Quiz: The immutable question set plus the ordered list of result Categories.
  - Session: Captures the progress of one user (current index, collected traits).
  - Step: What the host should render next (a Question or the completion marker).
  - Resolve: Maps collected trait tags to the winning Category.
*/
package domain

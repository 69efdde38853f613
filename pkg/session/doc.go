/*
Package session implements session management and persistence orchestration.

It serialises read-modify-write cycles on a user's quiz session, so that two rapid
answers from the same user cannot both advance the same question. Locks are held
per user ID in process memory and, optionally, in a distributed locker shared by
several replicas.
*/
package session
